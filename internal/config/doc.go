// Package config loads the ordersdash configuration.
//
// Values come from three layers, later layers winning:
//
//  1. Default()
//  2. a YAML file (ordersdash.yaml or configs/ordersdash.yaml, or an explicit path)
//  3. environment variables prefixed with ORDERSDASH_
//
// Environment keys follow the struct nesting, for example:
//
//	ORDERSDASH_SERVER_PORT=9000
//	ORDERSDASH_SOURCES_PRIMARY_PATH=/data/Summary.xlsx
//	ORDERSDASH_PIPELINE_JOIN_KEYS=User,Order Date
//	ORDERSDASH_PIPELINE_JOIN_MODE=outer
//
// The result is validated with go-playground/validator before it is returned.
package config
