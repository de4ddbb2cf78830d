package services

import (
	"testing"

	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
	"github.com/stretchr/testify/require"
)

func TestGetLayoutPerSiteType(t *testing.T) {
	green := GetLayout(models.SiteGreenfield)
	require.Equal(t, methods.RGB{R: 0x44, G: 0x72, B: 0xC4}, green.Primary)
	require.Equal(t, 6, green.TitleRows)

	roof := GetLayout(models.SiteRooftop)
	require.Equal(t, methods.RGB{R: 0x70, G: 0xAD, B: 0x47}, roof.Primary)
	require.Equal(t, 5, roof.TitleRows)

	poste := GetLayout(models.SitePostevia)
	require.Equal(t, methods.RGB{R: 0xED, G: 0x7D, B: 0x31}, poste.Primary)
}

func TestGetLayoutFallback(t *testing.T) {
	for _, siteType := range []string{"", "UNKNOWN", "greenfield"} {
		lay := GetLayout(siteType)
		require.Equal(t, defaultLayout.Primary, lay.Primary, "siteType %q", siteType)
		require.Equal(t, 4, lay.TitleRows)
	}
}

func TestLayoutColumnSchemaIsShared(t *testing.T) {
	for _, siteType := range []string{models.SiteGreenfield, models.SiteRooftop, models.SitePostevia, "UNKNOWN"} {
		lay := GetLayout(siteType)
		require.Equal(t, "Actividad", lay.Columns[0].Header)
		require.Equal(t, "CLASIFICACIÓN HALLAZGO", lay.Columns[3].Header)
		require.Len(t, lay.FirstRow, 6)
		require.Len(t, lay.SecondRow, 5)
	}
}
