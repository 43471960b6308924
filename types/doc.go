// Package types holds small generic helpers shared by the other packages,
// mainly for optional values kept as pointers.
package types
