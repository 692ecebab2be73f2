package domain

// UploadFile is one file selected by the user for knowledge upload.
type UploadFile struct {
	Name string
	Data []byte
}
