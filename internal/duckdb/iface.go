package duckdb

import "github.com/yardline/yardline/internal/model"

var _ model.Backend = (*Store)(nil)
