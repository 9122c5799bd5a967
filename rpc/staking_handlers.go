package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/staking"
	"stakevault/observability"
)

type stakeParams struct {
	Caller string `json:"caller"`
	PlanID uint8  `json:"planId"`
	Amount string `json:"amount"`
}

type claimParams struct {
	Caller string `json:"caller"`
	Index  uint64 `json:"index"`
}

type rewardsParams struct {
	Caller string `json:"caller"`
	To     string `json:"to,omitempty"`
	Amount string `json:"amount"`
}

type refundParams struct {
	Caller string `json:"caller"`
}

type positionsParams struct {
	Owner string `json:"owner"`
}

type pendingParams struct {
	Owner string `json:"owner"`
	Index uint64 `json:"index"`
}

type positionResult struct {
	Index     uint64 `json:"index"`
	Principal string `json:"principal"`
	PlanID    uint8  `json:"planId"`
	StartTime uint64 `json:"startTime"`
	Claimed   bool   `json:"claimed"`
}

type statsResult struct {
	TotalStaked       string `json:"totalStaked"`
	RewardPool        string `json:"rewardPool"`
	TotalUsers        uint64 `json:"totalUsers"`
	TotalPositions    uint64 `json:"totalPositions"`
	RefundMode        bool   `json:"refundMode"`
	RefundActivatedAt uint64 `json:"refundActivatedAt,omitempty"`
}

type planResult struct {
	ID            uint8  `json:"id"`
	LockDuration  uint64 `json:"lockDurationSeconds"`
	RewardRateBps uint32 `json:"rewardRateBps"`
}

func decodeAddress(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address %q", value)
	}
	return common.HexToAddress(trimmed), nil
}

func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return value, nil
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

// engineFailure maps engine sentinel errors onto RPC status codes and records
// the failure reason for metrics.
func engineFailure(w http.ResponseWriter, req *RPCRequest, method string, err error) {
	reason := "internal"
	status := http.StatusBadRequest
	code := codeInvalidParams
	switch {
	case errors.Is(err, staking.ErrPaused):
		reason, status, code = "paused", http.StatusServiceUnavailable, codeModulePaused
	case errors.Is(err, staking.ErrUnauthorized):
		reason, status, code = "unauthorized", http.StatusForbidden, codeUnauthorized
	case errors.Is(err, staking.ErrRefundModeActive):
		reason = "refund_mode"
	case errors.Is(err, staking.ErrInvalidPlan):
		reason = "invalid_plan"
	case errors.Is(err, staking.ErrZeroAmount):
		reason = "zero_amount"
	case errors.Is(err, staking.ErrInsufficientRewardPool):
		reason = "pool_insolvent"
	case errors.Is(err, staking.ErrInvalidIndex):
		reason = "invalid_index"
	case errors.Is(err, staking.ErrAlreadyClaimed):
		reason = "already_claimed"
	case errors.Is(err, staking.ErrInvalidPosition):
		reason = "invalid_position"
	case errors.Is(err, staking.ErrLockNotEnded):
		reason = "lock_not_ended"
	case errors.Is(err, staking.ErrRefundBeforeStake):
		reason = "refund_before_stake"
	case errors.Is(err, staking.ErrInvalidPlanDuration):
		reason = "invalid_plan_duration"
	case errors.Is(err, staking.ErrInvalidWithdrawAmount):
		reason = "invalid_withdraw"
	case errors.Is(err, staking.ErrTransferFailed):
		reason, status, code = "transfer_failed", http.StatusBadGateway, codeServerError
	default:
		status, code = http.StatusInternalServerError, codeServerError
	}
	metrics := observability.Staking()
	metrics.Operations.WithLabelValues(method, "error").Inc()
	metrics.Failures.WithLabelValues(method, reason).Inc()
	writeError(w, status, req.ID, code, err.Error(), nil)
}

func observe(method string) func(failed bool) {
	start := time.Now()
	return func(failed bool) {
		metrics := observability.Staking()
		metrics.Latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
		if !failed {
			metrics.Operations.WithLabelValues(method, "ok").Inc()
		}
	}
}

func (s *Server) publishPoolGauge() {
	stats, err := s.engine.Stats()
	if err != nil || stats.RewardPool == nil {
		return
	}
	value, _ := new(big.Float).SetInt(stats.RewardPool).Float64()
	observability.Staking().PoolGauge.Set(value)
}

func (s *Server) handleStake(w http.ResponseWriter, req *RPCRequest) {
	done := observe("stake")
	var params stakeParams
	if err := decodeParams(req, &params); err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	index, err := s.engine.Stake(caller, params.PlanID, amount)
	if err != nil {
		done(true)
		engineFailure(w, req, "stake", err)
		return
	}
	done(false)
	s.publishPoolGauge()
	s.log.Info("position opened", "owner", params.Caller, "planId", params.PlanID, "amount", amount.String(), "index", index)
	writeResult(w, req.ID, map[string]interface{}{"index": index})
}

func (s *Server) handleClaim(w http.ResponseWriter, req *RPCRequest) {
	done := observe("claim")
	var params claimParams
	if err := decodeParams(req, &params); err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payout, err := s.engine.Claim(caller, params.Index)
	if err != nil {
		done(true)
		engineFailure(w, req, "claim", err)
		return
	}
	done(false)
	s.publishPoolGauge()
	s.log.Info("position claimed", "owner", params.Caller, "index", params.Index, "payout", payout.String())
	writeResult(w, req.ID, map[string]interface{}{"payout": payout.String()})
}

func (s *Server) handleDepositRewards(w http.ResponseWriter, req *RPCRequest) {
	done := observe("depositRewards")
	var params rewardsParams
	if err := decodeParams(req, &params); err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.DepositRewards(caller, amount); err != nil {
		done(true)
		engineFailure(w, req, "depositRewards", err)
		return
	}
	done(false)
	s.publishPoolGauge()
	writeResult(w, req.ID, map[string]interface{}{"deposited": amount.String()})
}

func (s *Server) handleWithdrawRewards(w http.ResponseWriter, req *RPCRequest) {
	done := observe("withdrawRewards")
	var params rewardsParams
	if err := decodeParams(req, &params); err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	to := caller
	if strings.TrimSpace(params.To) != "" {
		if to, err = decodeAddress(params.To); err != nil {
			done(true)
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.WithdrawRewards(caller, to, amount); err != nil {
		done(true)
		engineFailure(w, req, "withdrawRewards", err)
		return
	}
	done(false)
	s.publishPoolGauge()
	writeResult(w, req.ID, map[string]interface{}{"withdrawn": amount.String()})
}

func (s *Server) handleActivateRefundMode(w http.ResponseWriter, req *RPCRequest) {
	done := observe("activateRefundMode")
	var params refundParams
	if err := decodeParams(req, &params); err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := decodeAddress(params.Caller)
	if err != nil {
		done(true)
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.ActivateRefundMode(caller); err != nil {
		done(true)
		engineFailure(w, req, "activateRefundMode", err)
		return
	}
	done(false)
	s.log.Warn("refund mode activated", "caller", params.Caller)
	writeResult(w, req.ID, map[string]interface{}{"refundMode": true})
}

func (s *Server) handlePendingReward(w http.ResponseWriter, req *RPCRequest) {
	var params pendingParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	owner, err := decodeAddress(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	reward, err := s.engine.PendingReward(owner, params.Index)
	if err != nil {
		engineFailure(w, req, "pendingReward", err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"reward": reward.String()})
}

func (s *Server) handlePositions(w http.ResponseWriter, req *RPCRequest) {
	var params positionsParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	owner, err := decodeAddress(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	positions, err := s.engine.UserPositions(owner)
	if err != nil {
		engineFailure(w, req, "positions", err)
		return
	}
	out := make([]positionResult, 0, len(positions))
	for i, pos := range positions {
		principal := "0"
		if pos.Principal != nil {
			principal = pos.Principal.String()
		}
		out = append(out, positionResult{
			Index:     uint64(i),
			Principal: principal,
			PlanID:    pos.PlanID,
			StartTime: pos.StartTime,
			Claimed:   pos.Claimed,
		})
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleStats(w http.ResponseWriter, req *RPCRequest) {
	stats, err := s.engine.Stats()
	if err != nil {
		engineFailure(w, req, "stats", err)
		return
	}
	writeResult(w, req.ID, statsResult{
		TotalStaked:       stats.TotalStaked.String(),
		RewardPool:        stats.RewardPool.String(),
		TotalUsers:        stats.TotalUsers,
		TotalPositions:    stats.TotalPositions,
		RefundMode:        stats.RefundMode,
		RefundActivatedAt: stats.RefundActivatedAt,
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, req *RPCRequest) {
	plans := s.engine.Plans()
	out := make([]planResult, 0, len(plans))
	for _, plan := range plans {
		out = append(out, planResult{ID: plan.ID, LockDuration: plan.LockDuration, RewardRateBps: plan.RewardRateBps})
	}
	writeResult(w, req.ID, out)
}
