package tools

import "context"

// SupportSpecs builds the label_conversation and get_available_labels tool specs.
func SupportSpecs(labels LabelStore) []Spec {
	return []Spec{
		{
			Name:        "label_conversation",
			Description: "Apply a tenant-defined label to the current conversation for segmentation/escalation.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"label_name": map[string]interface{}{"type": "string"},
				},
				"required": []string{"label_name"},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				conversationID, err := stringArg(args, "conversation_id")
				if err != nil {
					return nil, err
				}
				labelName, err := stringArg(args, "label_name")
				if err != nil {
					return nil, err
				}
				if err := labels.ApplyToConversation(ctx, tenantID, conversationID, labelName); err != nil {
					return nil, err
				}
				return map[string]interface{}{"conversation_id": conversationID, "label": labelName}, nil
			},
		},
		{
			Name:        "get_available_labels",
			Description: "List the tenant's available conversation labels.",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
			Run: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
				tenantID, err := stringArg(args, "tenant_id")
				if err != nil {
					return nil, err
				}
				available, err := labels.ListAvailable(ctx, tenantID)
				if err != nil {
					return nil, err
				}
				names := make([]string, 0, len(available))
				for _, l := range available {
					names = append(names, l.Name)
				}
				return map[string]interface{}{"labels": names}, nil
			},
		},
	}
}
