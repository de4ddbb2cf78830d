package methods

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyAnswer(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil answer", nil, ClassNoAnswer},
		{"ok literal", "OK", ClassOK},
		{"si", "Si", ClassOK},
		{"si accented", "sí", ClassOK},
		{"bueno", "Bueno", ClassOK},
		{"true string", "true", ClassOK},
		{"full ok label", "OK-Sin Incidencia", ClassOK},
		{"plain no", "No", ClassNOKLeve},
		{"malo", "Malo", ClassNOKLeve},
		{"nok", "NOK", ClassNOKLeve},
		{"nok grave", "NOK Grave", ClassNOKGrave},
		{"nok critico", "nok critico", ClassNOKGrave},
		{"na", "NA", ClassNA},
		{"n slash a", "n/a", ClassNA},
		{"no aplica", "No Aplica", ClassNA},
		{"unknown passes through", "Pendiente revisión", "Pendiente revisión"},
		{"single element array recurses", []string{"Bueno"}, ClassOK},
		{"multi element array joins", []string{"Oxido", "Grietas"}, "Oxido, Grietas"},
		{"interface array", []interface{}{"Si"}, ClassOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyAnswer(tc.value))
		})
	}
}

func TestClassificationColor(t *testing.T) {
	fill, font, ok := ClassificationColor(ClassOK)
	require.True(t, ok)
	require.Equal(t, RGB{0xC6, 0xEF, 0xCE}, fill)
	require.Equal(t, RGB{0x00, 0x61, 0x00}, font)

	_, _, ok = ClassificationColor(ClassNoAnswer)
	require.False(t, ok)

	_, _, ok = ClassificationColor("Pendiente revisión")
	require.False(t, ok)

	fill, _, ok = ClassificationColor(ClassNOKGrave)
	require.True(t, ok)
	require.Equal(t, RGB{0xFF, 0xC7, 0xCE}, fill)
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "Estado_de_pernos_y_tuercas", SanitizeFileName("Estado de pernos / y tuercas?"))
	require.Equal(t, "Medición_de_tensión", SanitizeFileName("Medición de tensión"))

	long := ""
	for i := 0; i < 30; i++ {
		long += "ab "
	}
	require.LessOrEqual(t, len(SanitizeFileName(long)), 50)
}

func TestIsStringInSlice(t *testing.T) {
	opts := []string{"Bueno", "Malo"}
	require.True(t, IsStringInSlice("Bueno", opts))
	require.False(t, IsStringInSlice("Regular", opts))
	require.False(t, IsStringInSlice("Bueno", nil))
}

func TestCellRef(t *testing.T) {
	require.Equal(t, "A1", CellRef(1, 1))
	require.Equal(t, "I12", CellRef(9, 12))
	require.Equal(t, "AA3", CellRef(27, 3))
}
