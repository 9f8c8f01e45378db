// Package aura defines the closed set of resource-affinity categories and the
// weighted compositions that describe an environment.
package aura
