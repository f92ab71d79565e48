// Package logger builds the zerolog logger shared by the journal's
// components.
package logger
