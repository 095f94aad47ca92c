// Package components defines ECS components for the ark-backed physics world.
package components
