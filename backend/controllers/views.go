package controllers

import (
	"github.com/gofiber/fiber/v2"

	"stepwise/backend/models"
	"stepwise/backend/services"
	"stepwise/backend/utils"
)

func categoryView(host string, category *models.Category) fiber.Map {
	return fiber.Map{
		"id":          category.ID,
		"name":        category.Name,
		"click_count": category.ClickCount,
		"bg_image":    utils.MediaURL(host, category.BgImage),
		"icon":        utils.MediaURL(host, category.Icon),
	}
}

func subjectView(host string, subject *models.Subject) fiber.Map {
	return fiber.Map{
		"id":          subject.ID,
		"name":        subject.Name,
		"category_id": subject.CategoryID,
		"image":       utils.MediaURL(host, subject.Image),
	}
}

func stepSummaryView(step *models.Step) fiber.Map {
	return fiber.Map{
		"id":    step.ID,
		"order": step.Order,
		"title": step.Title,
	}
}

func stepTestView(test *models.StepTest) fiber.Map {
	if test == nil {
		return nil
	}
	return fiber.Map{
		"id":                 test.ID,
		"question_count":     test.QuestionCount,
		"test_type":          test.TestType,
		"time_for_test":      int64(test.TimeForTest.Seconds()),
		"ball_for_each_test": test.BallForEachTest,
	}
}

func stepDetailView(host string, step *models.Step) fiber.Map {
	files := make([]fiber.Map, 0, len(step.Files))
	for i := range step.Files {
		f := &step.Files[i]
		files = append(files, fiber.Map{
			"id":    f.ID,
			"title": f.Title,
			"url":   utils.MediaURL(host, &f.Media),
		})
	}
	return fiber.Map{
		"id":          step.ID,
		"order":       step.Order,
		"title":       step.Title,
		"description": step.Description,
		"subject_id":  step.SubjectID,
		"files":       files,
		"test":        stepTestView(step.Test),
	}
}

func enrollmentView(e *models.UserSubject) fiber.Map {
	steps := make([]fiber.Map, 0, len(e.Subject.Steps))
	for i := range e.Subject.Steps {
		steps = append(steps, stepSummaryView(&e.Subject.Steps[i]))
	}
	return fiber.Map{
		"id":              e.ID,
		"subject_id":      e.SubjectID,
		"subject":         e.Subject.Name,
		"started":         e.Started,
		"started_time":    e.StartedTime,
		"finished":        e.Finished,
		"total_test_ball": e.TotalTestBall,
		"steps":           steps,
	}
}

func progressView(p *services.SubjectProgress) fiber.Map {
	return fiber.Map{
		"id":              p.Enrollment.ID,
		"subject_id":      p.Enrollment.SubjectID,
		"subject":         p.Enrollment.Subject.Name,
		"started":         p.Enrollment.Started,
		"finished":        p.Enrollment.Finished,
		"total_test_ball": p.Enrollment.TotalTestBall,
		"steps":           p.Steps,
	}
}

// answeredQuestionsView lists the recorded answers of a session. Correctness
// is revealed only once the session is closed.
func answeredQuestionsView(session *models.UserTotalTestResult) []fiber.Map {
	out := make([]fiber.Map, 0, len(session.Results))
	for i := range session.Results {
		r := &session.Results[i]
		answers := make([]fiber.Map, 0, len(r.Answers))
		for _, a := range r.Answers {
			view := fiber.Map{"id": a.ID, "answer": a.Answer}
			if session.Finished {
				view["is_correct"] = a.IsCorrect
			}
			answers = append(answers, view)
		}
		out = append(out, fiber.Map{
			"id":            r.ID,
			"question_id":   r.QuestionID,
			"question":      r.Question.Question,
			"question_type": r.Question.QuestionType,
			"test_answers":  answers,
		})
	}
	return out
}

func sessionView(session *models.UserTotalTestResult) fiber.Map {
	return fiber.Map{
		"id":              session.ID,
		"step_test_id":    session.StepTestID,
		"ball":            session.Ball,
		"percentage":      session.Percentage,
		"correct_answers": session.CorrectAnswers,
		"finished":        session.Finished,
		"created_at":      session.CreatedAt,
		"questions":       answeredQuestionsView(session),
	}
}

func userView(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}
