package persist

// Backend is a synchronous key/value store for encoded values. Get reports
// ok=false for a missing key.
type Backend interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}
