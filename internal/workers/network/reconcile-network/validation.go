package reconcilenetwork

import (
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"checkOnly": {
				Type:        "boolean",
				Description: "Only report the network state",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"networkStatus", "activeChainId", "targetChainId", "isReconciled"},
		Properties: map[string]validation.Property{
			"networkStatus": {
				Type: "string",
				Enum: []string{string(models.NetworkStatusReconciled), string(models.NetworkStatusMismatched)},
			},
			"activeChainId": {Type: "string", Pattern: "^0x[0-9a-fA-F]+$"},
			"targetChainId": {Type: "string", Pattern: "^0x[0-9a-fA-F]+$"},
			"targetNetwork": {Type: "string"},
			"isReconciled":  {Type: "boolean"},
		},
		AdditionalProperties: false,
	}
}
