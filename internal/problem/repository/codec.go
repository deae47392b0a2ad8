package repository

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Problems carry every test case, so cached payloads are zstd compressed.
var (
	problemEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	problemDecoder, _ = zstd.NewReader(nil)
)

func marshalProblem(problem *Problem) string {
	payload, err := json.Marshal(problem)
	if err != nil {
		return ""
	}
	return string(problemEncoder.EncodeAll(payload, nil))
}

func unmarshalProblem(data string) (*Problem, error) {
	if data == "" {
		return nil, nil
	}
	payload, err := problemDecoder.DecodeAll([]byte(data), nil)
	if err != nil {
		return nil, fmt.Errorf("decompress problem failed: %w", err)
	}
	var problem Problem
	if err := json.Unmarshal(payload, &problem); err != nil {
		return nil, err
	}
	return &problem, nil
}
