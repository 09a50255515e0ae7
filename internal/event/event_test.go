package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "FileCopied", typ: FileCopied},
		{want: "FileSkipped", typ: FileSkipped},
		{want: "FileRenamed", typ: FileRenamed},
		{want: "DirCreated", typ: DirCreated},
		{want: "DirRenamed", typ: DirRenamed},
		{want: "DirPruned", typ: DirPruned},
		{want: "OpFailed", typ: OpFailed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
}

func TestEventFields(t *testing.T) {
	err := errors.New("boom")
	e := Event{
		Type:    FileRenamed,
		Path:    "dst/report.txt",
		NewPath: "dst/report_2.txt",
		Err:     err,
		Detail:  true,
	}
	assert.Equal(t, FileRenamed, e.Type)
	assert.Equal(t, "dst/report.txt", e.Path)
	assert.Equal(t, "dst/report_2.txt", e.NewPath)
	assert.Equal(t, err, e.Err)
	assert.True(t, e.Detail)
}
