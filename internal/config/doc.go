// Package config provides configuration structures and utilities for aeoscan.
// It defines the main configuration options for auditing sites, crawling
// settings, evidence retention, and report generation preferences.
package config
