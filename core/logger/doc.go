// Package logger is a standardized event logging framework for the shell.
//
// Events are written as newline delimited JSON so they can be tailed while the
// shell runs and summarized later with a Report.
package logger
