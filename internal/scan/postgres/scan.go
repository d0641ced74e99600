package postgres

import (
	"context"
	"time"

	scanDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/scan"
	"github.com/frahmantamala/meal-scan/internal/scan"
	"gorm.io/gorm"
)

type ScanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) scan.RepositoryAPI {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]*scanDatamodel.Record, error) {
	var records []*scanDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND business_date = ?", employeeID, date).
		Order("recorded_at ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

func (r *ScanRepository) Create(ctx context.Context, rec *scanDatamodel.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
