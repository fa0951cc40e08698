package media

import "testing"

func TestValidateToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid video duration",
			tool: ToolGenerateVideo,
			args: map[string]interface{}{"duration": 8},
		},
		{
			name: "json-decoded video duration",
			tool: ToolGenerateVideo,
			args: map[string]interface{}{"duration": float64(6)},
		},
		{
			name:    "unsupported video duration",
			tool:    ToolGenerateVideo,
			args:    map[string]interface{}{"duration": 10},
			wantErr: true,
		},
		{
			name:    "fractional video duration",
			tool:    ToolGenerateVideo,
			args:    map[string]interface{}{"duration": 4.5},
			wantErr: true,
		},
		{
			name: "video duration omitted",
			tool: ToolGenerateVideo,
			args: map[string]interface{}{"prompt": "a storm over mountains"},
		},
		{
			name: "music duration in range",
			tool: ToolGenerateMusic,
			args: map[string]interface{}{"duration": 120},
		},
		{
			name:    "music duration too short",
			tool:    ToolGenerateMusic,
			args:    map[string]interface{}{"duration": 10},
			wantErr: true,
		},
		{
			name:    "music duration too long",
			tool:    ToolGenerateMusic,
			args:    map[string]interface{}{"duration": 481},
			wantErr: true,
		},
		{
			name: "valid aspect ratio",
			tool: ToolGenerateImage,
			args: map[string]interface{}{"aspect_ratio": "16:9"},
		},
		{
			name:    "unknown aspect ratio",
			tool:    ToolGenerateImage,
			args:    map[string]interface{}{"aspect_ratio": "5:4"},
			wantErr: true,
		},
		{
			name: "unrelated tool passes through",
			tool: "get_task_status",
			args: map[string]interface{}{"duration": -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateToolArgs(tt.tool, tt.args)
			if tt.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidAspectRatio(t *testing.T) {
	for _, ratio := range ImageAspectRatios {
		if !ValidAspectRatio(ratio) {
			t.Errorf("expected %q to be accepted", ratio)
		}
	}
	if ValidAspectRatio("2:1") {
		t.Error("expected 2:1 to be rejected")
	}
}
