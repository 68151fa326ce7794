// Package record holds the occurrence record model shared by QC stages:
// raw input fields, per-field presence/validity annotations, the closed
// quality-flag set, write-once interpreted values, and the dropped
// disposition.
package record
