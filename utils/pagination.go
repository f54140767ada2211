package utils

import (
	"strconv"

	"clinicops/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination is a normalized page request.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page and limit to their defaults and bounds.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{Page: page, Limit: limit}
}

// PaginationFromQuery reads ?page= and ?limit=; bad values fall back to defaults.
func PaginationFromQuery(c *gin.Context) Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	return NewPagination(page, limit)
}

func (p Pagination) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// FindOptions applies skip, limit and sort to a Mongo find.
func (p Pagination) FindOptions(sort bson.D) *options.FindOptions {
	return options.Find().SetSkip(p.Skip()).SetLimit(int64(p.Limit)).SetSort(sort)
}

// TotalPages is ceil(total/limit).
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// NewPage wraps one page of items in the listing envelope.
func NewPage[T any](items []T, p Pagination, total int64) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	return models.Page[T]{
		Items: items,
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: p.TotalPages(total),
	}
}
