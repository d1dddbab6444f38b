package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileTooLarge        = errors.New("file too large")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileTypeUnsupported = errors.New("unsupported file type, only audio recordings are accepted")
	ErrNoFile              = errors.New("audio recording is required")
)

const maxFileNameSize = 245

// Browsers record into webm/mp4/ogg containers which sniff as video or
// application types even when they only carry audio
var containerTypes = []string{"video/webm", "video/mp4", "application/ogg", "audio/webm"}

func acceptedType(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "audio/") || slices.Contains(containerTypes, m.String()) {
			return true
		}
	}

	return false
}

// AudioValidator checks an uploaded recording and returns it opened and
// rewound together with the sniffed MIME type. On failure the returned code
// is the HTTP status to answer with.
func AudioValidator(fh *multipart.FileHeader, maxFileSize int64) (int, multipart.File, string, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, "", ErrNoFile
	}

	// Check headers first which is easy to spoof, but faster for legit clients
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "audio/") && !strings.HasPrefix(ct, "video/") && ct != "application/octet-stream" && ct != "application/ogg" {
		return http.StatusBadRequest, nil, "", ErrFileTypeUnsupported
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, "", ErrFileNameTooLong
	}

	if fh.Size > maxFileSize {
		return http.StatusRequestEntityTooLarge, nil, "", ErrFileTooLarge
	}

	// And now do the checks on the actual file to avoid
	// malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, "", err
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	if !acceptedType(mime) {
		f.Close()
		return http.StatusBadRequest, nil, "", ErrFileTypeUnsupported
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return http.StatusInternalServerError, nil, "", err
	}

	// Strip parameters such as "; codecs=opus"
	detected, _, _ := strings.Cut(mime.String(), ";")

	return 0, f, detected, nil
}
