// Package client is the request dispatch boundary of the view engine.
//
// The view package only depends on the Dispatcher interface. HTTPDispatcher
// is the net/http implementation; CachedDispatcher decorates any dispatcher
// with a redis backed response cache.
package client
