// Package pacing provides the jittered delay taken before each upstream
// request and between subject listings.
package pacing
