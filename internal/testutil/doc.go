// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate when constructing messages and scripted
// models. They are not intended for production usage.
package testutil
