package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "analytics",
			objectType:  "snapshot",
			identifier:  "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			paramsKey:   nil,
			expectedKey: "formpulse:analytics:snapshot:01ARZ3NDEKTSV4RRFFQ69G5FAV",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "analytics",
			objectType:  "summary",
			identifier:  "123",
			paramsKey:   []string{},
			expectedKey: "formpulse:analytics:summary:123",
		},
		{
			name:        "with one paramsKey",
			serviceName: "analytics",
			objectType:  "snapshot",
			identifier:  "abc",
			paramsKey:   []string{"tenant1"},
			expectedKey: "formpulse:analytics:snapshot:abc:tenant1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "questionnaire",
			objectType:  "fields",
			identifier:  "xyz",
			paramsKey:   []string{"v1", "v2", "v3"},
			expectedKey: "formpulse:questionnaire:fields:xyz:v1_v2_v3",
		},
		{
			name:        "with paramsKey containing special characters",
			serviceName: "service",
			objectType:  "type",
			identifier:  "id",
			paramsKey:   []string{"param-1", "param_2"},
			expectedKey: "formpulse:service:type:id:param-1_param_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}
