// Package vault declares the byte store the stateful collaborators persist their
// records in.
package vault

type Vault interface {
	// Import stores data under id, replacing any previous value.
	Import(id string, data []byte) error
	// ImportIfAbsent stores data under id unless the id is taken. It reports whether
	// the value was stored.
	ImportIfAbsent(id string, data []byte) (bool, error)
	Get(id string) ([]byte, error)
	Has(id string) bool
	Delete(id string) error
	// IDs lists the stored ids in no particular order.
	IDs() []string
}
