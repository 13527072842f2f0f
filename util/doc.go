// Package util holds small generic helpers shared across packages.
package util
