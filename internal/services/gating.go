package services

import types "github.com/edulearn/edulearn-backend/internal/domain"

// FullAccess reports whether a viewer sees every content item of the lesson:
// a signed-in viewer with an active enrollment, or any signed-in viewer of a
// free lesson. Anonymous viewers never get full access.
func FullAccess(viewerID uint, lesson *types.Lesson, active *types.LessonEnrollment) bool {
	if viewerID == 0 || lesson == nil {
		return false
	}
	return active != nil || lesson.IsFree
}

// GateLesson filters every module down to its free-preview contents unless
// full is set. Modules themselves are always kept.
func GateLesson(lesson *types.Lesson, full bool) {
	if lesson == nil || full {
		return
	}
	for _, m := range lesson.Modules {
		if m == nil {
			continue
		}
		kept := make([]*types.LessonContent, 0, len(m.Contents))
		for _, c := range m.Contents {
			if c != nil && c.IsFreePreview {
				kept = append(kept, c)
			}
		}
		m.Contents = kept
	}
}
