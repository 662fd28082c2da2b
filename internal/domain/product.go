package domain

import (
	"errors"
	"time"
)

// ErrProductNotFound — товар отсутствует или снят с продажи.
var ErrProductNotFound = errors.New("product not found")

// Категории каталога.
const (
	CategoryConcentrate = "concentrate"
	CategoryTube        = "tube"
	CategoryFlavored    = "flavored"
	CategoryTea         = "tea"
)

// Categories — допустимые категории.
var Categories = []string{CategoryConcentrate, CategoryTube, CategoryFlavored, CategoryTea}

// Product — товар каталога. Цена в минимальных единицах валюты (пайсы).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	SKU         string    `json:"sku"`
	IsFeatured  bool      `json:"is_featured"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductFilter — параметры выборки каталога.
type ProductFilter struct {
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
	MinPrice int64  `json:"min_price,omitempty"`
	MaxPrice int64  `json:"max_price,omitempty"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// ErrProductConflict — товар с таким SKU или ID уже существует.
var ErrProductConflict = errors.New("product already exists")
