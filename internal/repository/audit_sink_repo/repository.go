package audit_sink_repo

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"zodiac_backend/internal/model"
	"zodiac_backend/internal/repository"
)

const (
	logsTable     = "audit_logs"
	colID         = "id"
	colCreatedAt  = "created_at"
	colUserID     = "user_id"
	colAction     = "action"
	colData       = "data"
	colSessionID  = "session_id"
	colDeviceInfo = "device_info"

	sessionsTable   = "audit_sessions"
	colStartTime    = "start_time"
	colEndTime      = "end_time"
	colTotalSpins   = "total_spins"
	colTotalBet     = "total_bet"
	colTotalWin     = "total_win"
	colNetResult    = "net_result"
	colAvgBet       = "avg_bet"
	colMaxWin       = "max_win"
	colFeaturesUsed = "features_used"

	// insertChunk Максимум строк в одном INSERT
	insertChunk = 500
)

type repo struct {
	dbc       *pgxpool.Pool
	getter    *trmpgx.CtxGetter
	txManager trm.Manager
}

func NewAuditSinkRepository(dbc *pgxpool.Pool, txManager trm.Manager) repository.AuditSinkRepository {
	return &repo{
		dbc:       dbc,
		getter:    trmpgx.DefaultCtxGetter,
		txManager: txManager,
	}
}

// InsertEntries - пишет пачку записей аудита одной транзакцией.
// Повторная вставка той же записи игнорируется (ON CONFLICT по id),
// поэтому повтор после сбоя не плодит дубликаты
func (r *repo) InsertEntries(ctx context.Context, entries []model.AuditLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return r.txManager.Do(ctx, func(txCtx context.Context) error {
		for start := 0; start < len(entries); start += insertChunk {
			end := min(start+insertChunk, len(entries))

			query := sq.Insert(logsTable).
				Columns(colID, colCreatedAt, colUserID, colAction, colData, colSessionID, colDeviceInfo).
				Suffix("ON CONFLICT (" + colID + ") DO NOTHING").
				PlaceholderFormat(sq.Dollar)

			for _, e := range entries[start:end] {
				data, err := json.Marshal(e.Data)
				if err != nil {
					return err
				}
				var device []byte
				if e.DeviceInfo != nil {
					device, err = json.Marshal(e.DeviceInfo)
					if err != nil {
						return err
					}
				}
				query = query.Values(e.ID, e.Timestamp, e.UserID, string(e.Action), data, e.SessionID, device)
			}

			sqlStr, args, err := query.ToSql()
			if err != nil {
				return err
			}

			_, err = r.getter.DefaultTrOrDB(txCtx, r.dbc).Exec(txCtx, sqlStr, args...)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveSessionMetrics - сохраняет агрегат сессии.
// Если сессия уже есть, то обновляем её
func (r *repo) SaveSessionMetrics(ctx context.Context, m model.SessionMetrics) error {
	features, err := json.Marshal(m.FeaturesUsed)
	if err != nil {
		return err
	}

	query := sq.Insert(sessionsTable).
		Columns(colSessionID, colUserID, colStartTime, colEndTime, colTotalSpins, colTotalBet,
			colTotalWin, colNetResult, colAvgBet, colMaxWin, colFeaturesUsed).
		Values(m.SessionID, m.UserID, m.StartTime, m.EndTime, m.TotalSpins, m.TotalBet,
			m.TotalWin, m.NetResult, m.AvgBet, m.MaxWin, features).
		Suffix("ON CONFLICT (" + colSessionID + ") DO UPDATE SET " +
			colEndTime + " = EXCLUDED." + colEndTime + ", " +
			colTotalSpins + " = EXCLUDED." + colTotalSpins + ", " +
			colTotalBet + " = EXCLUDED." + colTotalBet + ", " +
			colTotalWin + " = EXCLUDED." + colTotalWin + ", " +
			colNetResult + " = EXCLUDED." + colNetResult + ", " +
			colAvgBet + " = EXCLUDED." + colAvgBet + ", " +
			colMaxWin + " = EXCLUDED." + colMaxWin + ", " +
			colFeaturesUsed + " = EXCLUDED." + colFeaturesUsed).
		PlaceholderFormat(sq.Dollar)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return err
}

func (r *repo) Ping(ctx context.Context) error {
	return r.dbc.Ping(ctx)
}
