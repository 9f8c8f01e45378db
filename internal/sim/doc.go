// Package sim integrates a single reserve toward its regen/loss equilibrium.
//
// Capacity is fixed for the whole run and strain is always zero. Both are
// reported in every sample so a later model that evolves them can keep the
// same output shape. Every function here is pure; concurrent calls need no
// coordination.
package sim
