package cloudwriter

// CloudWriter buffers bytes destined for an object store. The object
// becomes visible on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

// CloudWriterFactory opens writers against a configured provider.
type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}
