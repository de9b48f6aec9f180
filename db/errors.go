package db

import "gorm.io/gorm"

// ErrNotFound 与 gorm 保持一致，方便上层统一 errors.Is 判断
var ErrNotFound = gorm.ErrRecordNotFound
