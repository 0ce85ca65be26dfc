// Package catalog provides the property configuration the broker validates
// against.
//
// A Catalog answers "what is the configuration of property P". Memory is the
// in-memory implementation, built from Go values or loaded from YAML:
//
//	properties:
//	  - id: 0x15600503
//	    name: HVAC_TEMPERATURE_SET
//	    access: read_write
//	    change_mode: on_change
//	    areas:
//	      - id: 1
//	        min_float: 16
//	        max_float: 28
//	        initial: {float: [21]}
//
// ValidateValue and CheckArea implement the per-request checks applied to
// reads and writes.
package catalog
