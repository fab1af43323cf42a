package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIngest_RejectsInvalidBatchMode(t *testing.T) {
	orig := ingestBatchMode
	defer func() { ingestBatchMode = orig }()

	ingestBatchMode = "bogus"
	err := runIngest(ingestCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid batch mode")
}
