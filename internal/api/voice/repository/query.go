package voiceRepository

const (
	queryCreateSession = `
		INSERT INTO voice_sessions (
			id, user_id, language, started_at, ended_at,
			total_commands, successful_commands, success_rate, avg_confidence,
			pending_confirmation, pending_intent, pending_route, last_activity
		) VALUES (
			:id, :user_id, :language, :started_at, :ended_at,
			:total_commands, :successful_commands, :success_rate, :avg_confidence,
			:pending_confirmation, :pending_intent, :pending_route, :last_activity
		)
	`

	queryGetSessionByID = `
		SELECT
			id, user_id, language, started_at, ended_at,
			total_commands, successful_commands, success_rate, avg_confidence,
			pending_confirmation, pending_intent, pending_route, last_activity
		FROM voice_sessions
		WHERE id = :id
	`

	queryGetActiveSessionByUserID = `
		SELECT
			id, user_id, language, started_at, ended_at,
			total_commands, successful_commands, success_rate, avg_confidence,
			pending_confirmation, pending_intent, pending_route, last_activity
		FROM voice_sessions
		WHERE user_id = :user_id
		AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`

	queryUpdateSession = `
		UPDATE voice_sessions
		SET
			language = :language,
			ended_at = :ended_at,
			total_commands = :total_commands,
			successful_commands = :successful_commands,
			success_rate = :success_rate,
			avg_confidence = :avg_confidence,
			pending_confirmation = :pending_confirmation,
			pending_intent = :pending_intent,
			pending_route = :pending_route,
			last_activity = :last_activity
		WHERE id = :id
	`

	queryGetSessionsByUserID = `
		SELECT
			id, user_id, language, started_at, ended_at,
			total_commands, successful_commands, success_rate, avg_confidence,
			pending_confirmation, pending_intent, pending_route, last_activity
		FROM voice_sessions
		WHERE user_id = :user_id
		ORDER BY started_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountSessionsByUserID = `
		SELECT COUNT(*)
		FROM voice_sessions
		WHERE user_id = :user_id
	`

	queryEndStaleSessions = `
		UPDATE voice_sessions
		SET ended_at = :ended_at
		WHERE ended_at IS NULL
		AND last_activity < :cutoff
		RETURNING
			id, user_id, language, started_at, ended_at,
			total_commands, successful_commands, success_rate, avg_confidence,
			pending_confirmation, pending_intent, pending_route, last_activity
	`

	queryCreateCommand = `
		INSERT INTO voice_commands (
			id, session_id, user_id, transcript, intent, confidence,
			parameters, success, route, duration_ms, error_kind, audio_url,
			created_at
		) VALUES (
			:id, :session_id, :user_id, :transcript, :intent, :confidence,
			:parameters, :success, :route, :duration_ms, :error_kind, :audio_url,
			:created_at
		)
	`

	queryGetCommandsBySessionID = `
		SELECT
			id, session_id, user_id, transcript, intent, confidence,
			parameters, success, route, duration_ms, error_kind, audio_url,
			created_at
		FROM voice_commands
		WHERE session_id = :session_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountCommandsBySessionID = `
		SELECT COUNT(*)
		FROM voice_commands
		WHERE session_id = :session_id
	`

	queryGetCommandsByUserID = `
		SELECT
			id, session_id, user_id, transcript, intent, confidence,
			parameters, success, route, duration_ms, error_kind, audio_url,
			created_at
		FROM voice_commands
		WHERE user_id = :user_id
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountCommandsByUserID = `
		SELECT COUNT(*)
		FROM voice_commands
		WHERE user_id = :user_id
	`

	queryCreatePattern = `
		INSERT INTO intent_patterns (
			id, language, intent, template, variants, register,
			weight, route, is_active, created_at, updated_at
		) VALUES (
			:id, :language, :intent, :template, :variants, :register,
			:weight, :route, true, :created_at, :updated_at
		)
	`

	queryGetPatternByID = `
		SELECT
			id, language, intent, template, variants, register,
			weight, route, created_at, updated_at
		FROM intent_patterns
		WHERE id = :id AND is_active = true
	`

	queryGetPatternsByLanguage = `
		SELECT
			id, language, intent, template, variants, register,
			weight, route, created_at, updated_at
		FROM intent_patterns
		WHERE language = :language AND is_active = true
		ORDER BY created_at ASC
	`

	queryGetAllActivePatterns = `
		SELECT
			id, language, intent, template, variants, register,
			weight, route, created_at, updated_at
		FROM intent_patterns
		WHERE is_active = true
		ORDER BY language, created_at ASC
	`

	queryUpdatePattern = `
		UPDATE intent_patterns
		SET
			template = :template,
			variants = :variants,
			register = :register,
			weight = :weight,
			route = :route,
			updated_at = :updated_at
		WHERE id = :id AND is_active = true
	`

	queryDeactivatePattern = `
		UPDATE intent_patterns
		SET is_active = false, updated_at = :updated_at
		WHERE id = :id AND is_active = true
	`

	queryUpsertPreference = `
		INSERT INTO language_preferences (
			user_id, primary_language, auto_switch, require_confirmation, updated_at
		) VALUES (
			:user_id, :primary_language, :auto_switch, :require_confirmation, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE
		SET
			primary_language = EXCLUDED.primary_language,
			auto_switch = EXCLUDED.auto_switch,
			require_confirmation = EXCLUDED.require_confirmation,
			updated_at = EXCLUDED.updated_at
	`

	queryGetPreferenceByUserID = `
		SELECT
			user_id, primary_language, auto_switch, require_confirmation, updated_at
		FROM language_preferences
		WHERE user_id = :user_id
	`

	queryCreateSwitchEvent = `
		INSERT INTO language_switches (
			user_id, from_language, to_language, trigger, confidence, switched_at
		) VALUES (
			:user_id, :from_language, :to_language, :trigger, :confidence, :switched_at
		)
	`

	queryGetSwitchHistory = `
		SELECT
			user_id, from_language, to_language, trigger, confidence, switched_at
		FROM language_switches
		WHERE user_id = :user_id
		ORDER BY switched_at DESC
		LIMIT :limit
	`
)
