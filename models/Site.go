package models

import "time"

// Site classifications driving report layout and optional form sections.
const (
	SiteGreenfield = "GREENFIELD"
	SiteRooftop    = "ROOFTOP"
	SitePostevia   = "POSTEVIA"
)

type Site struct {
	ID             string    `gorm:"type:varchar(64);primary_key" json:"id"`
	CodigoTowernex string    `gorm:"type:varchar(64);uniqueIndex" json:"codigoTowernex"`
	CodigoSitio    *string   `gorm:"type:varchar(64)" json:"codigoSitio"`
	Name           string    `gorm:"type:varchar(255)" json:"name"`
	SiteType       string    `gorm:"type:varchar(32)" json:"siteType"`
	Latitud        *float64  `json:"latitud"`
	Longitud       *float64  `json:"longitud"`
	Direccion      *string   `gorm:"type:varchar(512)" json:"direccion"`
	Regional       *string   `gorm:"type:varchar(128)" json:"regional"`
	ContratistaOM  *string   `gorm:"type:varchar(128)" json:"contratistaOM"`
	EmpresaAuditora *string  `gorm:"type:varchar(128)" json:"empresaAuditora"`
	TecnicoEA      *string   `gorm:"type:varchar(128)" json:"tecnicoEA"`
	IsActive       bool      `gorm:"default:true" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	InventoryEE []InventoryEE `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"inventoryEE,omitempty"`
	InventoryEP []InventoryEP `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"inventoryEP,omitempty"`
}

// InventoryEE is a mast-mounted structure element ("Elemento en Estructura").
// IdEE is a site-scoped sequence, not a global id; the unique index backs the
// reconciler's next-id allocation against concurrent writers.
type InventoryEE struct {
	ID                   string    `gorm:"type:varchar(64);primary_key" json:"id"`
	SiteID               string    `gorm:"type:varchar(64);index;uniqueIndex:uidx_ee_site_seq" json:"siteId"`
	IdEE                 int       `gorm:"uniqueIndex:uidx_ee_site_seq" json:"idEE"`
	TipoSoporte          *string   `gorm:"type:varchar(128)" json:"tipoSoporte"`
	TipoEE               string    `gorm:"type:varchar(128)" json:"tipoEE"`
	Situacion            string    `gorm:"type:varchar(64);default:En servicio" json:"situacion"`
	SituacionRRU         *string   `gorm:"type:varchar(64)" json:"situacionRRU"`
	Modelo               *string   `gorm:"type:varchar(128)" json:"modelo"`
	Fabricante           *string   `gorm:"type:varchar(128)" json:"fabricante"`
	TipoExposicionViento *string   `gorm:"type:varchar(64)" json:"tipoExposicionViento"`
	AristaCaraMastil     *string   `gorm:"type:varchar(64)" json:"aristaCaraMastil"`
	OperadorPropietario  *string   `gorm:"type:varchar(128)" json:"operadorPropietario"`
	AlturaAntena         *float64  `json:"alturaAntena"`
	Diametro             *float64  `json:"diametro"`
	Largo                *float64  `json:"largo"`
	Ancho                *float64  `json:"ancho"`
	Fondo                *float64  `json:"fondo"`
	Azimut               *float64  `json:"azimut"`
	EpaM2                *float64  `json:"epaM2"`
	UsoCompartido        bool      `json:"usoCompartido"`
	SistemaMovil         *string   `gorm:"type:varchar(64)" json:"sistemaMovil"`
	Observaciones        *string   `gorm:"type:text" json:"observaciones"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// InventoryEP is ground-mounted equipment ("Equipo en Piso").
type InventoryEP struct {
	ID                  string    `gorm:"type:varchar(64);primary_key" json:"id"`
	SiteID              string    `gorm:"type:varchar(64);index;uniqueIndex:uidx_ep_site_seq" json:"siteId"`
	IdEP                int       `gorm:"uniqueIndex:uidx_ep_site_seq" json:"idEP"`
	TipoPiso            *string   `gorm:"type:varchar(128)" json:"tipoPiso"`
	UbicacionEquipo     *string   `gorm:"type:varchar(128)" json:"ubicacionEquipo"`
	Situacion           string    `gorm:"type:varchar(64);default:En servicio" json:"situacion"`
	EstadoPiso          *string   `gorm:"type:varchar(64)" json:"estadoPiso"`
	Modelo              *string   `gorm:"type:varchar(128)" json:"modelo"`
	Fabricante          *string   `gorm:"type:varchar(128)" json:"fabricante"`
	UsoEP               *string   `gorm:"type:varchar(128)" json:"usoEP"`
	OperadorPropietario *string   `gorm:"type:varchar(128)" json:"operadorPropietario"`
	Ancho               *float64  `json:"ancho"`
	Profundidad         *float64  `json:"profundidad"`
	Altura              *float64  `json:"altura"`
	SuperficieOcupada   *float64  `json:"superficieOcupada"`
	Observaciones       *string   `gorm:"type:text" json:"observaciones"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
