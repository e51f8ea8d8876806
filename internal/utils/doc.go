// Package utils provides small helpers shared by the daemon: keyed
// HMAC-SHA256 hashing for the device bridge integrity header, a resty based
// HTTP client that signs JSON request bodies, and UUIDv7 session ids.
package utils
