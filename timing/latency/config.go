package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds latency values for the instruction classes of the detailed
// core.
type Config struct {
	// ALULatency is the execution latency for integer and logic
	// operations. Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the base execution latency for branches, not
	// including misprediction penalty. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// BranchMispredictPenalty is the additional cycles lost on a branch
	// misprediction. Default: 12 cycles.
	BranchMispredictPenalty uint64 `json:"branch_mispredict_penalty"`

	// LoadLatency is the execution-stage latency of a load. Cache access
	// time is charged separately. Default: 1 cycle.
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the execution-stage latency of a store. Default: 1
	// cycle.
	StoreLatency uint64 `json:"store_latency"`
}

// DefaultConfig returns a Config with the default latencies.
func DefaultConfig() *Config {
	return &Config{
		ALULatency:              1,
		BranchLatency:           1,
		BranchMispredictPenalty: 12,
		LoadLatency:             1,
		StoreLatency:            1,
	}
}

// LoadConfig reads a Config from a JSON file. Fields omitted from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading latency config: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing latency config: %w", err)
	}

	return config, nil
}
