// Package config provides centralized configuration management for the SPC pipeline.
// It handles loading configuration from multiple sources, validation, and path
// resolution for every file the pipeline reads or writes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SPC_<SECTION>_<FIELD>:
//
//	SPC_LOGGING_LEVEL=debug
//	SPC_ANALYSIS_FY_START_MONTH=4
//	SPC_ANALYSIS_CURRENT_FY=2025
//	SPC_SOURCE_KIND=sql
//	SPC_SOURCE_SQL_SERVER=db.example.org
//	SPC_SOURCE_API_BASE_URL=https://surveillance.example.org/api
//	SPC_ALERTS_KAFKA_BROKERS=kafka-1:9092,kafka-2:9092
//
// # Directory Layout
//
// Paths are resolved against paths.base_dir:
//
//	data/raw/          extracted events
//	data/processed/    standardised events
//	outputs/reports/   SPC tables, workbook, run report, run logs
//	outputs/charts/    reserved for charting tools
package config
