// Package terminal draws ASCII frames on ANSI terminals and answers sizing
// questions about the attached output device.
package terminal
