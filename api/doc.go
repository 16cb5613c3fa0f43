// Package api serves article search over HTTP.
//
// Routes:
//
//	GET /health                       relational store and vector collection status
//	GET /search?q=&nprobe=&limit=     ranked articles as JSON
package api
