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
			serviceName: "evaluation",
			objectType:  "run",
			identifier:  "01hq",
			paramsKey:   nil,
			expectedKey: "exameval:evaluation:run:01hq",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "evaluation",
			objectType:  "run",
			identifier:  "01hq",
			paramsKey:   []string{},
			expectedKey: "exameval:evaluation:run:01hq",
		},
		{
			name:        "with one paramsKey",
			serviceName: "report",
			objectType:  "student",
			identifier:  "stu_1",
			paramsKey:   []string{"qp_1"},
			expectedKey: "exameval:report:student:stu_1:qp_1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "rag",
			objectType:  "answer",
			identifier:  "stu_1",
			paramsKey:   []string{"qp_1", "hash"},
			expectedKey: "exameval:rag:answer:stu_1:qp_1_hash",
		},
		{
			name:        "with paramsKey containing special characters",
			serviceName: "service",
			objectType:  "type",
			identifier:  "id",
			paramsKey:   []string{"param-1", "param_2"},
			expectedKey: "exameval:service:type:id:param-1_param_2",
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
