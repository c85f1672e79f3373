package yahoo

// Helpers for loosely typed Yahoo payloads

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

// getRaw reads {"raw": n, "fmt": "..."} wrappers as well as bare numbers
func getRaw(m map[string]interface{}, key string) *float64 {
	if inner := getMap(m, key); inner != nil {
		return getFloat64(inner, "raw")
	}
	return getFloat64(m, key)
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}
