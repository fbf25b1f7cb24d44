package utils

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidPagination = errors.New("page and limit must be positive integers")

// Pagination holds pagination parameters.
type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// GetPagination extracts the page and limit from the query parameters.
// Missing values fall back to the defaults; malformed or non-positive values
// are rejected.
func GetPagination(c *fiber.Ctx, defaultPage, defaultLimit int) (Pagination, error) {
	page, err := queryPositive(c, "page", defaultPage)
	if err != nil {
		return Pagination{}, err
	}
	limit, err := queryPositive(c, "limit", defaultLimit)
	if err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}

func queryPositive(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidPagination
	}
	return n, nil
}
