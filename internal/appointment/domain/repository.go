package domain

import (
	"context"

	"github.com/IAmRubenNavarro/doula-life/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, appt *Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Appointment, error)
	Update(ctx context.Context, db *gorm.DB, appt *Appointment) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	List(ctx context.Context, db *gorm.DB, filter ListAppointmentFilter, page pagination.Pagination) ([]*Appointment, error)
}
