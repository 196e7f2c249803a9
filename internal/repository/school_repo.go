package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/search"
)

// SchoolRepository executes school lookups and single-record mutations.
type SchoolRepository interface {
	SearchByName(ctx context.Context, term string, limit int) ([]models.School, error)
	Count(ctx context.Context) (int64, error)
	ListSubjects(ctx context.Context, term string) ([]models.SubjectOffering, error)
	ListCCAs(ctx context.Context, term string) ([]models.CCAOffering, error)
	ListProgrammes(ctx context.Context, term string) ([]models.ProgrammeOffering, error)
	ListDistinctives(ctx context.Context, term string) ([]models.DistinctiveOffering, error)
	Advanced(ctx context.Context, criteria search.Criteria) ([]models.School, error)
	GetByID(ctx context.Context, id uint) (models.School, error)
	Create(ctx context.Context, school *models.School) error
	CreateBatch(ctx context.Context, schools []models.School) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.School, error)
	Delete(ctx context.Context, id uint) (models.School, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository constructs the school repository.
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) SearchByName(ctx context.Context, term string, limit int) ([]models.School, error) {
	query := r.db.WithContext(ctx).
		Model(&models.School{}).
		Scopes(search.NameScope(term), search.Ordered)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var schools []models.School
	if err := query.Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.School{}).Count(&total).Error
	return total, err
}

func (r *schoolRepository) ListSubjects(ctx context.Context, term string) ([]models.SubjectOffering, error) {
	var rows []models.SubjectOffering
	err := r.db.WithContext(ctx).
		Table("schools").
		Select("schools.school_name, subj.subject_desc").
		Joins("JOIN school_subjects ss ON ss.school_id = schools.school_id").
		Joins("JOIN subjects subj ON subj.subject_id = ss.subject_id").
		Scopes(search.NameScope(term)).
		Order("schools.school_id ASC, subj.subject_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *schoolRepository) ListCCAs(ctx context.Context, term string) ([]models.CCAOffering, error) {
	var rows []models.CCAOffering
	err := r.db.WithContext(ctx).
		Table("schools").
		Select("schools.school_name, c.cca_generic_name, sca.cca_customized_name, sca.school_section").
		Joins("JOIN school_ccas sca ON sca.school_id = schools.school_id").
		Joins("JOIN ccas c ON c.cca_id = sca.cca_id").
		Scopes(search.NameScope(term)).
		Order("schools.school_id ASC, sca.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *schoolRepository) ListProgrammes(ctx context.Context, term string) ([]models.ProgrammeOffering, error) {
	var rows []models.ProgrammeOffering
	err := r.db.WithContext(ctx).
		Table("schools").
		Select("schools.school_name, p.moe_programme_desc").
		Joins("JOIN school_programmes sp ON sp.school_id = schools.school_id").
		Joins("JOIN programmes p ON p.programme_id = sp.programme_id").
		Scopes(search.NameScope(term)).
		Order("schools.school_id ASC, p.programme_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *schoolRepository) ListDistinctives(ctx context.Context, term string) ([]models.DistinctiveOffering, error) {
	var rows []models.DistinctiveOffering
	err := r.db.WithContext(ctx).
		Table("schools").
		Select("schools.school_name, d.alp_domain, d.alp_title, d.llp_domain1, d.llp_title").
		Joins("JOIN school_distinctives sd ON sd.school_id = schools.school_id").
		Joins("JOIN distinctive_programmes d ON d.distinctive_id = sd.distinctive_id").
		Scopes(search.NameScope(term)).
		Order("schools.school_id ASC, d.distinctive_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *schoolRepository) Advanced(ctx context.Context, criteria search.Criteria) ([]models.School, error) {
	scope, err := search.CriteriaScope(criteria)
	if err != nil {
		return nil, err
	}

	var schools []models.School
	err = r.db.WithContext(ctx).
		Model(&models.School{}).
		Scopes(scope, search.Ordered).
		Find(&schools).Error
	if err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).Where("school_id = ?", id).First(&school).Error; err != nil {
		return models.School{}, err
	}
	return school, nil
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	return r.db.WithContext(ctx).Create(school).Error
}

func (r *schoolRepository) CreateBatch(ctx context.Context, schools []models.School) error {
	if len(schools) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&schools, 100).Error
	})
}

func (r *schoolRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.School, error) {
	var updated models.School
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ?", id).First(&updated).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.School{}).Where("school_id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("school_id = ?", id).First(&updated).Error
	})
	if err != nil {
		return models.School{}, err
	}
	return updated, nil
}

// Delete removes the school and every association row referencing it in one transaction.
func (r *schoolRepository) Delete(ctx context.Context, id uint) (models.School, error) {
	var removed models.School
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ?", id).First(&removed).Error; err != nil {
			return err
		}

		associations := []interface{}{
			&models.SchoolSubject{},
			&models.SchoolCCA{},
			&models.SchoolProgramme{},
			&models.SchoolDistinctive{},
		}
		for _, association := range associations {
			if err := tx.Where("school_id = ?", id).Delete(association).Error; err != nil {
				return err
			}
		}

		result := tx.Where("school_id = ?", id).Delete(&models.School{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return models.School{}, err
	}
	return removed, nil
}
