package postgres

import (
	"context"
	"time"

	overtimeDatamodel "github.com/frahmantamala/meal-scan/internal/core/datamodel/overtime"
	"github.com/frahmantamala/meal-scan/internal/overtime"
	"gorm.io/gorm"
)

type OvertimeRepository struct {
	db *gorm.DB
}

func NewOvertimeRepository(db *gorm.DB) overtime.RepositoryAPI {
	return &OvertimeRepository{db: db}
}

func (r *OvertimeRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*overtimeDatamodel.Permission, error) {
	var p overtimeDatamodel.Permission
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND business_date = ?", employeeID, date).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *OvertimeRepository) Create(ctx context.Context, p *overtimeDatamodel.Permission) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *OvertimeRepository) DeleteByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("employee_id = ? AND business_date = ?", employeeID, date).
		Delete(&overtimeDatamodel.Permission{})
	return res.RowsAffected, res.Error
}

func (r *OvertimeRepository) DeleteByDate(ctx context.Context, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("business_date = ?", date).
		Delete(&overtimeDatamodel.Permission{})
	return res.RowsAffected, res.Error
}

func (r *OvertimeRepository) ListByDate(ctx context.Context, date time.Time) ([]*overtimeDatamodel.GrantRow, error) {
	var rows []*overtimeDatamodel.GrantRow
	err := r.db.WithContext(ctx).
		Table("overtime_permissions AS p").
		Select("p.employee_id, e.name, p.granted_by, p.granted_at").
		Joins("JOIN employees e ON e.employee_id = p.employee_id").
		Where("p.business_date = ?", date).
		Order("p.granted_at DESC").
		Order("p.id DESC").
		Scan(&rows).Error
	return rows, err
}
