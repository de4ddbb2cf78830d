package services

import (
	"fmt"

	"github.com/4rk4ng3l/TowerFormsBackEnd/methods"
	"github.com/4rk4ng3l/TowerFormsBackEnd/models"
)

// Franjas are the fixed height bands bolt samples are grouped into on a
// tower. The torque sheet always prints all ten, sampled or not.
var Franjas = []string{
	"0-6 m", "6-12 m", "12-18 m", "18-24 m", "24-30 m",
	"30-36 m", "36-42 m", "42-48 m", "48-54 m", "54-60 m",
}

// ElementoTypes are the element families a bolt sample can belong to.
var ElementoTypes = []string{
	"Pernos Estructura",
	"Pernos Conexión",
	"Anclajes",
	"Soportes Antena",
	"Riostras",
}

// TorqueReference is the static diameter → required torque table printed
// under the matrix.
type TorqueReference struct {
	Diametro string
	NewtonM  float64
}

var TorqueReferences = []TorqueReference{
	{`1/2"`, 81},
	{`5/8"`, 163},
	{`3/4"`, 285},
	{`7/8"`, 461},
	{`1"`, 690},
}

// TorqueCell is the tally for one franja × elemento intersection.
type TorqueCell struct {
	CantidadTornillos int
	NoPasan           int
}

// TorqueMatrix arranges the submission's torque samples into the fixed
// Franjas × ElementoTypes grid. Samples naming an unknown band or element
// type are dropped.
func TorqueMatrix(samples []models.TorqueSample) map[string]map[string]TorqueCell {
	matrix := map[string]map[string]TorqueCell{}
	for _, f := range Franjas {
		matrix[f] = map[string]TorqueCell{}
	}
	for _, s := range samples {
		row, ok := matrix[s.Franja]
		if !ok {
			continue
		}
		if !methods.IsStringInSlice(s.Elemento, ElementoTypes) {
			continue
		}
		cell := row[s.Elemento]
		cell.CantidadTornillos += s.CantidadTornillos
		cell.NoPasan += s.NoPasan
		row[s.Elemento] = cell
	}
	return matrix
}

// CompliancePct computes the torque pass percentage for a bolt tally.
func CompliancePct(total, noPasan int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-noPasan) / float64(total) * 100
}

func FormatCompliance(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// ComplianceColor grades a compliance percentage: ≥95 green, ≥80 yellow,
// below red.
func ComplianceColor(pct float64) (fill methods.RGB, font methods.RGB) {
	switch {
	case pct >= 95:
		return methods.RGB{R: 0xC6, G: 0xEF, B: 0xCE}, methods.RGB{R: 0x00, G: 0x61, B: 0x00}
	case pct >= 80:
		return methods.RGB{R: 0xFF, G: 0xEB, B: 0x9C}, methods.RGB{R: 0x9C, G: 0x57, B: 0x00}
	default:
		return methods.RGB{R: 0xFF, G: 0xC7, B: 0xCE}, methods.RGB{R: 0x9C, G: 0x00, B: 0x06}
	}
}
