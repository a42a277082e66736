package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"SoberTrack/internal/cli/api"
	"SoberTrack/internal/cli/apperr"
	"SoberTrack/internal/cli/model"
	"SoberTrack/internal/cli/repo"
)

const (
	// DefaultBatchSize — сколько элементов очереди берётся за один прогон.
	DefaultBatchSize = 50

	// defaultBaseDelay — базовая задержка экспоненциального backoff.
	defaultBaseDelay = 500 * time.Millisecond

	maxRetries = 3
)

// errEndpointUnimplemented — фиксированный отказ сервера для таблицы,
// чей эндпоинт ещё не реализован.
var errEndpointUnimplemented = fmt.Errorf("remote endpoint not implemented")

// Result — итог одного прогона движка.
type Result struct {
	Synced int
	Failed int
	Errors []string
}

// upsertResponse — ответ сервера на upsert.
type upsertResponse struct {
	RemoteID string `json:"remote_id"`
}

// Engine выгребает очередь синхронизации одной пачкой: строго
// последовательно, с backoff для повторов, через стратегию таблицы.
// Движок не трогает UI — только возвращает сводку.
type Engine struct {
	serverURL string
	queue     repo.Queue
	records   repo.Records
	registry  map[string]Strategy
	tokens    repo.TokenStore
	sched     Scheduler
	log       *zap.SugaredLogger

	// BatchSize и BaseDelay можно переопределить до первого Run.
	BatchSize int
	BaseDelay time.Duration
}

// NewEngine собирает движок. registry == nil означает полный набор стратегий.
func NewEngine(serverURL string, queue repo.Queue, records repo.Records,
	registry map[string]Strategy, tokens repo.TokenStore, sched Scheduler,
	log *zap.SugaredLogger) *Engine {
	if registry == nil {
		registry = NewRegistry(records)
	}
	if sched == nil {
		sched = NewWallClock()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{
		serverURL: strings.TrimRight(serverURL, "/"),
		queue:     queue,
		records:   records,
		registry:  registry,
		tokens:    tokens,
		sched:     sched,
		log:       log,
		BatchSize: DefaultBatchSize,
		BaseDelay: defaultBaseDelay,
	}
}

// Run обрабатывает одну пачку. Ошибка чтения самой очереди прерывает прогон
// и возвращается единственной ошибкой, не трогая ни одного элемента.
func (e *Engine) Run(ctx context.Context) Result {
	var res Result

	items, err := e.queue.DequeueBatch(ctx, e.BatchSize, maxRetries)
	if err != nil {
		e.log.Errorw("queue read failed, aborting run", "error", err)
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	if len(items) == 0 {
		return res
	}

	token, err := e.tokens.Load()
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("no auth token: %v", err))
		return res
	}

	for _, it := range items {
		if it.RetryCount > 0 {
			delay := e.BaseDelay * (1 << (it.RetryCount - 1))
			if err := e.sched.Sleep(ctx, delay); err != nil {
				// прогон оборван извне; оставшиеся элементы дождутся следующего
				res.Errors = append(res.Errors, err.Error())
				return res
			}
		}

		err := e.process(ctx, it, token)
		switch {
		case err == nil:
			res.Synced++
		case errors.Is(err, errEndpointUnimplemented):
			// фиксированный отказ: элемент снимается с очереди, запись
			// возвращается в pending и не гоняется по кругу
			res.Failed++
			res.Errors = append(res.Errors, itemError(it, err))
			if rerr := e.records.ResetPending(ctx, it.TableName, it.RecordID); rerr != nil {
				e.log.Errorw("reset pending failed", "table", it.TableName, "id", it.RecordID, "error", rerr)
			}
			if aerr := e.queue.Ack(ctx, it.ID); aerr != nil {
				e.log.Errorw("ack failed", "item", it.ID, "error", aerr)
			}
		default:
			res.Failed++
			res.Errors = append(res.Errors, itemError(it, err))
			e.log.Warnw("sync item failed", "table", it.TableName, "id", it.RecordID,
				"op", it.Operation, "retry", it.RetryCount, "error", err)
			if nerr := e.queue.Nack(ctx, it.ID, err.Error(), maxRetries); nerr != nil {
				e.log.Errorw("nack failed", "item", it.ID, "error", nerr)
			}
		}
	}
	return res
}

func itemError(it model.QueueItem, err error) string {
	return fmt.Sprintf("%s/%s: %s", it.TableName, it.RecordID, err.Error())
}

// process выполняет одну операцию очереди против сервера.
func (e *Engine) process(ctx context.Context, it model.QueueItem, token string) error {
	strategy, ok := e.registry[it.TableName]
	if !ok {
		return apperr.Protocol("Unknown table: %s", it.TableName)
	}

	if it.Operation == model.OpDelete {
		return e.pushDelete(ctx, strategy, it, token)
	}

	payload, err := strategy.ToRemote(ctx, it.RecordID)
	if err != nil {
		return err
	}
	remoteID, err := e.pushUpsert(strategy, payload, token)
	if err != nil {
		return err
	}
	if err := e.records.MarkSynced(ctx, it.TableName, it.RecordID, remoteID); err != nil {
		return err
	}
	return e.queue.Ack(ctx, it.ID)
}

// pushUpsert отправляет upsert и возвращает серверный идентификатор записи.
// Upsert идемпотентен по id, поэтому повторная отправка после сбоя между
// запросом и ack безвредна.
func (e *Engine) pushUpsert(strategy Strategy, payload any, token string) (string, error) {
	endpoint := e.serverURL + strategy.Endpoint() + "/upsert"
	resp, body, err := api.PostJSON(endpoint, payload, token)
	if err != nil {
		return "", apperr.Remote(endpoint, 0, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotImplemented:
		return "", apperr.Remote(endpoint, resp.StatusCode, errEndpointUnimplemented)
	default:
		return "", apperr.Remote(endpoint, resp.StatusCode,
			fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}
	var ur upsertResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return "", apperr.Remote(endpoint, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return ur.RemoteID, nil
}

// pushDelete удаляет запись на сервере. 404 считается успехом: записи нет —
// цель достигнута, повтор не нужен.
func (e *Engine) pushDelete(ctx context.Context, strategy Strategy, it model.QueueItem, token string) error {
	endpoint := e.serverURL + strategy.Endpoint() + "/" + it.RecordID
	resp, body, err := api.Delete(endpoint, token)
	if err != nil {
		return apperr.Remote(endpoint, 0, err)
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		// применено
	case http.StatusNotImplemented:
		return apperr.Remote(endpoint, resp.StatusCode, errEndpointUnimplemented)
	default:
		return apperr.Remote(endpoint, resp.StatusCode,
			fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}
	return e.queue.Ack(ctx, it.ID)
}
