package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"localpulse/models"
	"localpulse/notifier"
	"localpulse/repositories"
)

// allowedTransitions is the moderation state machine. Any state may return
// to pending (re-submission for review); pending never expires on its own.
var allowedTransitions = map[models.PostStatus][]models.PostStatus{
	models.StatusPending:   {models.StatusPublished, models.StatusRejected},
	models.StatusRejected:  {models.StatusPublished, models.StatusPending},
	models.StatusPublished: {models.StatusArchived, models.StatusRejected, models.StatusPending},
	models.StatusArchived:  {models.StatusPending},
}

// TransitionAllowed reports whether the state machine defines a transition
// from one status to another.
func TransitionAllowed(from, to models.PostStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// actionFor classifies a successful transition for the audit log.
func actionFor(to models.PostStatus) models.ModerationAction {
	switch to {
	case models.StatusPublished:
		return models.ActionApproved
	case models.StatusRejected:
		return models.ActionRejected
	default:
		return models.ActionStatusChange
	}
}

type ModerationService interface {
	// Transition validates and executes one status change, appending
	// exactly one audit entry when (and only when) the guarded update
	// wins.
	Transition(actor models.Actor, postID uint, target models.PostStatus, notes string) error
	History(postID uint) ([]models.ModerationLog, error)
	Logs(params models.ModerationLogParams) ([]models.ModerationLog, int64, error)
}

type moderationService struct {
	db       *gorm.DB
	postRepo repositories.PostRepository
	logRepo  repositories.ModerationLogRepository
	userRepo repositories.UserRepository
	notify   notifier.Notifier
	log      *logrus.Logger
}

func NewModerationService(
	db *gorm.DB,
	postRepo repositories.PostRepository,
	logRepo repositories.ModerationLogRepository,
	userRepo repositories.UserRepository,
	notify notifier.Notifier,
	log *logrus.Logger,
) ModerationService {
	return &moderationService{
		db:       db,
		postRepo: postRepo,
		logRepo:  logRepo,
		userRepo: userRepo,
		notify:   notify,
		log:      log,
	}
}

func (s *moderationService) Transition(actor models.Actor, postID uint, target models.PostStatus, notes string) error {
	if !models.ValidStatus(target) {
		return models.NewValidationError("status", "unknown status "+string(target))
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NotFoundError{Resource: "post"}
		}
		s.log.WithField("post_id", postID).WithError(err).Error("load post for transition")
		return models.IntegrityError{Err: err}
	}

	// Requesting the current status is malformed input, caught before
	// authorization and before anything is logged.
	if post.Status == target {
		return models.NewValidationError("status", "post is already "+string(target))
	}

	if !actor.CanModerate() {
		// A plain user may only pull their own post back to pending.
		if target != models.StatusPending || post.UserID != actor.ID {
			return models.PermissionError{Message: "not allowed to change post status"}
		}
	}

	if !TransitionAllowed(post.Status, target) {
		return models.InvalidTransitionError{From: post.Status, To: target}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		affected, err := s.postRepo.WithTx(tx).UpdateStatusGuarded(postID, post.Status, target)
		if err != nil {
			return models.IntegrityError{Err: err}
		}
		// Zero rows means a concurrent transition won the race. The
		// loser applies no side effect and writes no log entry.
		if affected == 0 {
			return models.InvalidTransitionError{From: post.Status, To: target}
		}

		actorID := actor.ID
		entry := &models.ModerationLog{
			UserID:  &actorID,
			PostID:  postID,
			Action:  actionFor(target),
			Details: notes,
		}
		return s.logRepo.WithTx(tx).Append(entry)
	})
	if err != nil {
		return err
	}

	s.notifyAuthor(post, target, notes)
	return nil
}

func (s *moderationService) notifyAuthor(post *models.Post, target models.PostStatus, notes string) {
	author, err := s.userRepo.GetByID(post.UserID)
	if err != nil {
		s.log.WithField("user_id", post.UserID).WithError(err).Warn("load author for notification")
		return
	}
	subject := fmt.Sprintf("Your post %q is now %s", post.Title, target)
	message := subject
	if notes != "" {
		message += "<br>Moderator notes: " + notes
	}
	s.notify.Notify([]string{author.Email}, subject, message, "")
}

func (s *moderationService) History(postID uint) ([]models.ModerationLog, error) {
	return s.logRepo.GetForPost(postID)
}

func (s *moderationService) Logs(params models.ModerationLogParams) ([]models.ModerationLog, int64, error) {
	return s.logRepo.GetList(params)
}
