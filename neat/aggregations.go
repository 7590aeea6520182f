package neat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregationType combines the weighted inputs of a node into its raw value.
type AggregationType func(inputs []float64) float64

// AggregationFunctions maps function names to the actual aggregation functions.
var AggregationFunctions = map[string]AggregationType{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"min":     AggregateMin,
	"max":     AggregateMax,
	"mean":    AggregateMean,
}

// GetAggregation retrieves an aggregation function by name.
func GetAggregation(name string) (AggregationType, error) {
	if fn, ok := AggregationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown aggregation function: %s", name)
}

// Every aggregation returns 0 for an empty input slice.

// AggregateSum calculates the sum of the inputs.
func AggregateSum(inputs []float64) float64 {
	return floats.Sum(inputs)
}

// AggregateProduct calculates the product of the inputs.
func AggregateProduct(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Prod(inputs)
}

// AggregateMin finds the minimum value among the inputs.
func AggregateMin(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Min(inputs)
}

// AggregateMax finds the maximum value among the inputs.
func AggregateMax(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return floats.Max(inputs)
}

// AggregateMean calculates the average of the inputs.
func AggregateMean(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return stat.Mean(inputs, nil)
}
