package metadata

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
)

// Decode strips DataURIPrefix from uri, base64 decodes the payload and
// parses the JSON document. Brotli compressed payloads are inflated first.
func Decode(uri string) (Metadata, error) {
	if !strings.HasPrefix(uri, DataURIPrefix) {
		return Metadata{}, newDecodeError("missing "+DataURIPrefix+" prefix", nil)
	}

	payload, err := decodeBase64(strings.TrimSpace(uri[len(DataURIPrefix):]))
	if err != nil {
		return Metadata{}, newDecodeError("invalid base64 payload", err)
	}

	document, err := inflate(payload)
	if err != nil {
		return Metadata{}, err
	}

	return Parse(document)
}

// Parse validates and decodes a raw JSON metadata document.
func Parse(document []byte) (Metadata, error) {
	var result Metadata
	if err := json.Unmarshal(document, &result); err != nil {
		return Metadata{}, newDecodeError("invalid JSON document", err)
	}
	if strings.TrimSpace(result.Name) == "" {
		return Metadata{}, newDecodeError("name is required", nil)
	}
	return result, nil
}

// Encode renders metadata as a data URI that Decode accepts.
func Encode(metadata Metadata) (string, error) {
	document, err := marshal(metadata)
	if err != nil {
		return "", err
	}
	return DataURIPrefix + base64.StdEncoding.EncodeToString(document), nil
}

// EncodeCompressed is Encode with the JSON document brotli compressed.
func EncodeCompressed(metadata Metadata) (string, error) {
	document, err := marshal(metadata)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	writer := brotli.NewWriterLevel(&buffer, brotli.BestCompression)
	if _, err := writer.Write(document); err != nil {
		return "", fmt.Errorf("failed to compress metadata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to compress metadata: %w", err)
	}

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buffer.Bytes()), nil
}

func marshal(metadata Metadata) ([]byte, error) {
	if strings.TrimSpace(metadata.Name) == "" {
		return nil, fmt.Errorf("metadata name is required")
	}
	document, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return document, nil
}

func decodeBase64(payload string) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("payload is empty")
	}
	if strings.HasSuffix(payload, "=") || len(payload)%4 == 0 {
		return base64.StdEncoding.DecodeString(payload)
	}
	return base64.RawStdEncoding.DecodeString(payload)
}

func inflate(payload []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return payload, nil
	}

	decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(payload)))
	if err != nil || len(decompressed) == 0 {
		// not brotli either; let the JSON parser report the problem
		return payload, nil
	}
	return decompressed, nil
}
