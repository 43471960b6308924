// Package consts holds endpoint path segments, header names and server
// error codes shared by the transport and view packages.
package consts
