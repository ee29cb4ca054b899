// Package output decodes host tool CSV output into records.
package output
