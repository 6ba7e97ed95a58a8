package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/paneltrack_backend/config"
	"bitbucket.org/mmdatafocus/paneltrack_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateUnset marks a board that has never been inspected.
const DateUnset = "unset"

const (
	// DefaultPositionX and DefaultPositionY center a board on the floor plan
	// when the imported document carries no usable coordinates.
	DefaultPositionX = 50.0
	DefaultPositionY = 50.0
)

// StringList stores a list of names as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	case nil:
		*l = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// LoadFlags are the four independent connected-load booleans of a panel.
type LoadFlags struct {
	Welder  bool `json:"welder"`
	Grinder bool `json:"grinder"`
	Light   bool `json:"light"`
	Pump    bool `json:"pump"`
}

// Describe renders the flags as the load-cause text used in reports.
func (f LoadFlags) Describe() string {
	var causes []string
	if f.Welder {
		causes = append(causes, "용접기(Welder)")
	}
	if f.Grinder {
		causes = append(causes, "그라인더(Grinder)")
	}
	if f.Light {
		causes = append(causes, "조명(Light)")
	}
	if f.Pump {
		causes = append(causes, "펌프(Pump)")
	}
	if len(causes) == 0 {
		return "해당 없음 (None)"
	}
	out := causes[0]
	for _, c := range causes[1:] {
		out += ", " + c
	}
	return out
}

// Position is a floor-plan coordinate in percent on each axis (0-100).
// It is read and written only by the floor-plan collaborator.
type Position struct {
	X float64 `json:"x" validate:"gte=0,lte=100"`
	Y float64 `json:"y" validate:"gte=0,lte=100"`
}

func DefaultPosition() Position {
	return Position{X: DefaultPositionX, Y: DefaultPositionY}
}

// Breaker is one breaker-detail row of a panel.
type Breaker struct {
	ID                 uint            `gorm:"primary_key" json:"id"`
	InspectionRecordID uint            `gorm:"index" json:"-"`
	Number             int             `json:"number"`
	Category           string          `gorm:"size:50" json:"category"`
	Capacity           string          `gorm:"size:50" json:"capacity"`
	LoadName           string          `gorm:"size:100" json:"load_name"`
	Type               string          `gorm:"size:50" json:"type"`
	Kind               string          `gorm:"size:50" json:"kind"`
	CurrentR           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_r"`
	CurrentS           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_s"`
	CurrentT           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_t"`
	CapMotor           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cap_motor"`
	CapLight           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cap_light"`
	CapHeat            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cap_heat"`
	CapSpare           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cap_spare"`
}

// ThermalImage holds the optional thermal-camera measurement of a panel.
type ThermalImage struct {
	ID                 uint            `gorm:"primary_key" json:"id"`
	InspectionRecordID uint            `gorm:"index" json:"-"`
	ImageUrl           string          `json:"image_url"`
	MaxTemp            decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"max_temp"`
	AvgTemp            decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"avg_temp"`
	Emissivity         decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"emissivity"`
	EquipmentId        string          `gorm:"size:100" json:"equipment_id"`
	MeasuredAt         string          `gorm:"size:50" json:"measured_at"`
}

// LoadSummary is derived from the breaker rows; it is never persisted.
type LoadSummary struct {
	PhaseR   decimal.Decimal `json:"phase_r"`
	PhaseS   decimal.Decimal `json:"phase_s"`
	PhaseT   decimal.Decimal `json:"phase_t"`
	PercentR decimal.Decimal `json:"percent_r"`
	PercentS decimal.Decimal `json:"percent_s"`
	PercentT decimal.Decimal `json:"percent_t"`
}

// ComputeLoadSummary sums the three-phase currents over all breakers.
func ComputeLoadSummary(breakers []Breaker) *LoadSummary {
	summary := &LoadSummary{
		PhaseR: decimal.Zero, PhaseS: decimal.Zero, PhaseT: decimal.Zero,
		PercentR: decimal.Zero, PercentS: decimal.Zero, PercentT: decimal.Zero,
	}
	for _, b := range breakers {
		summary.PhaseR = summary.PhaseR.Add(b.CurrentR)
		summary.PhaseS = summary.PhaseS.Add(b.CurrentS)
		summary.PhaseT = summary.PhaseT.Add(b.CurrentT)
	}
	total := summary.PhaseR.Add(summary.PhaseS).Add(summary.PhaseT)
	if total.IsPositive() {
		hundred := decimal.NewFromInt(100)
		summary.PercentR = summary.PhaseR.Mul(hundred).Div(total).Round(1)
		summary.PercentS = summary.PhaseS.Mul(hundred).Div(total).Round(1)
		summary.PercentT = summary.PhaseT.Mul(hundred).Div(total).Round(1)
	}
	return summary
}

// InspectionRecord is one physical distribution panel, keyed by PanelNo.
// Exactly one live record per PanelNo exists in any working set.
type InspectionRecord struct {
	ID                 uint             `gorm:"primary_key" json:"id"`
	PanelNo            string           `gorm:"size:100;not null;uniqueIndex" json:"panel_no" validate:"required"`
	Status             InspectionStatus `gorm:"size:20;default:Pending" json:"status"`
	LastInspectionDate string           `gorm:"size:50" json:"last_inspection_date"`
	Loads              LoadFlags        `gorm:"embedded;embeddedPrefix:load_" json:"loads"`
	PhotoUrl           string           `json:"photo_url"`
	Memo               string           `gorm:"type:text" json:"memo"`
	Position           Position         `gorm:"embedded;embeddedPrefix:pos_" json:"position"`
	ProjectName        string           `gorm:"size:200" json:"project_name"`
	Contractor         string           `gorm:"size:200" json:"contractor"`
	ManagementNumber   string           `gorm:"size:100" json:"management_number"`
	Inspectors         StringList       `gorm:"type:json" json:"inspectors"`
	Breakers           []Breaker        `gorm:"foreignKey:InspectionRecordID" json:"breakers"`
	ThermalImage       *ThermalImage    `gorm:"foreignKey:InspectionRecordID" json:"thermal_image"`
	LoadSummary        *LoadSummary     `gorm:"-" json:"load_summary"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Clone deep-copies a record so engine passes can mutate freely while the
// caller's working set stays untouched until the result is swapped in.
func (r *InspectionRecord) Clone() *InspectionRecord {
	clone := *r
	clone.Breakers = make([]Breaker, len(r.Breakers))
	copy(clone.Breakers, r.Breakers)
	if r.ThermalImage != nil {
		thermal := *r.ThermalImage
		clone.ThermalImage = &thermal
	}
	if r.Inspectors != nil {
		clone.Inspectors = make(StringList, len(r.Inspectors))
		copy(clone.Inspectors, r.Inspectors)
	}
	if r.LoadSummary != nil {
		summary := *r.LoadSummary
		clone.LoadSummary = &summary
	}
	return &clone
}

/*
caches:
	BoardList
*/

// GetInspectionRecords returns the full working set, breaker details included.
func GetInspectionRecords(ctx context.Context) ([]*InspectionRecord, error) {
	var records []*InspectionRecord

	exists, err := config.GetRedisObject("BoardList", &records)
	if err == nil && exists {
		return records, nil
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).
		Preload("Breakers").
		Preload("ThermalImage").
		Order("panel_no").
		Find(&records).Error; err != nil {
		return nil, err
	}

	if err := config.SetRedisObject("BoardList", &records, 5*time.Minute); err != nil {
		config.LogError(config.GetLogger(), "inspection.go", "GetInspectionRecords", "SetRedisObject", nil, err)
	}
	return records, nil
}

// GetInspectionRecordByPanelNo loads one board or utils.ErrorRecordNotFound.
func GetInspectionRecordByPanelNo(ctx context.Context, panelNo string) (*InspectionRecord, error) {
	db := config.GetDB()
	var record InspectionRecord
	err := db.WithContext(ctx).
		Preload("Breakers").
		Preload("ThermalImage").
		Where("panel_no = ?", panelNo).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// SaveInspectionRecords persists a reconciled working set in one transaction.
// Records are matched by panel number; breaker rows are replaced wholesale.
func SaveInspectionRecords(ctx context.Context, records []*InspectionRecord) error {
	db := config.GetDB()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			var existing InspectionRecord
			err := tx.Where("panel_no = ?", record.PanelNo).First(&existing).Error
			if err == nil {
				record.ID = existing.ID
				record.CreatedAt = existing.CreatedAt
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if record.ID > 0 {
				if err := tx.Where("inspection_record_id = ?", record.ID).Delete(&Breaker{}).Error; err != nil {
					return err
				}
				if err := tx.Where("inspection_record_id = ?", record.ID).Delete(&ThermalImage{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := config.RemoveRedisKey("BoardList"); err != nil {
		config.LogError(config.GetLogger(), "inspection.go", "SaveInspectionRecords", "RemoveRedisKey", nil, err)
	}
	return nil
}
