// Package services defines the shared error taxonomy for pipeline stages and
// hosts clients for the external services clipcast depends on.
package services
