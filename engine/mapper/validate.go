package mapper

// StepCount counts the step entries of a raw record regardless of dialect:
// Zephyr keeps them under "steps", qTest under "test_steps".
func StepCount(record map[string]any) int {
	for _, key := range []string{"steps", "test_steps"} {
		if v, ok := record[key]; ok {
			if list, ok := v.([]any); ok {
				return len(list)
			}
			if list, ok := v.([]map[string]any); ok {
				return len(list)
			}
		}
	}
	return 0
}

// StringField reads a string-valued field from a raw record, returning ""
// when absent or not a string.
func StringField(record map[string]any, key string) string {
	if v, ok := record[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
