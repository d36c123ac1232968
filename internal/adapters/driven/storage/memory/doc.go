// Package memory holds passages in process memory for the "memory"
// vector backend. Nothing survives the process.
package memory
