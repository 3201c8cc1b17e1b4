package models

import "gorm.io/gorm"

// Layout — a saved designer layout. Pages are stored serialized: the
// designer owns the shape, the database only round-trips it.
type Layout struct {
	gorm.Model
	LayoutID    string `gorm:"column:layout_id;uniqueIndex;size:36"`
	Name        string
	Description string
	Pages       string `gorm:"type:text"`
	Quick       bool   `gorm:"index"` // the single unnamed autosave slot
}

// DeployRecord — one row per publish attempt.
type DeployRecord struct {
	gorm.Model
	DeviceID  string `gorm:"column:device_id;index"`
	ConfigSHA string `gorm:"column:config_sha;size:64"`
	Pages     int
	Objects   int
	Success   bool
	Error     string `gorm:"type:text"`
}
