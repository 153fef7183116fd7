package filetype

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path        string
		kind        Kind
		displayable bool
		text        bool
	}{
		{"/models/Vase/vase.stl", KindModel, true, false},
		{"/models/Vase/VASE.STL", KindModel, true, false},
		{"/models/Vase/plate.3mf", KindModel, true, false},
		{"/models/Vase/photo.JPG", KindImage, true, false},
		{"/models/Vase/photo.jpeg", KindImage, true, false},
		{"/models/Vase/anim.gif", KindImage, true, false},
		{"/models/Vase/render.png", KindImage, true, false},
		{"/models/Vase/notes.txt", KindText, false, true},
		{"/models/Vase/README.md", KindText, false, true},
		{"/models/Vase/profile.ini", KindText, false, true},
		{"/models/Vase/settings.yml", KindText, false, true},
		{"/models/Vase/vase.gcode", KindOther, false, false},
		{"/models/Vase/Makefile", KindOther, false, false},
		{"/models/Vase/stl", KindOther, false, false},
		{"/models/Vase.stl/readme", KindOther, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.kind {
				t.Errorf("Classify(%s) = %s, expected %s", tt.path, got, tt.kind)
			}
			if got := IsDisplayable(tt.path); got != tt.displayable {
				t.Errorf("IsDisplayable(%s) = %v, expected %v", tt.path, got, tt.displayable)
			}
			if got := IsText(tt.path); got != tt.text {
				t.Errorf("IsText(%s) = %v, expected %v", tt.path, got, tt.text)
			}
		})
	}
}
