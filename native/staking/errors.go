package staking

import "errors"

var (
	ErrInvalidPlan            = errors.New("staking: invalid plan")
	ErrInvalidPlanDuration    = errors.New("staking: plan lock duration is zero")
	ErrZeroAmount             = errors.New("staking: amount must be positive")
	ErrRefundModeActive       = errors.New("staking: refund mode active")
	ErrInsufficientRewardPool = errors.New("staking: insufficient reward pool")
	ErrInvalidIndex           = errors.New("staking: position index out of range")
	ErrAlreadyClaimed         = errors.New("staking: position already claimed")
	ErrInvalidPosition        = errors.New("staking: position has no principal")
	ErrLockNotEnded           = errors.New("staking: lock period not ended")
	ErrRefundBeforeStake      = errors.New("staking: position opened after refund activation")
	ErrInvalidWithdrawAmount  = errors.New("staking: invalid withdraw amount")
	ErrPaused                 = errors.New("staking: module paused")
	ErrUnauthorized           = errors.New("staking: unauthorized")
	ErrTransferFailed         = errors.New("staking: token transfer failed")
)
