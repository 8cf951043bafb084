package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automation_rules (
				id VARCHAR(255) PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'inactive')),
				trigger_type VARCHAR(100) NOT NULL,
				conditions JSONB,
				action_kind VARCHAR(100) NOT NULL,
				action_config JSONB NOT NULL DEFAULT '{}',
				owner VARCHAR(255) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_rules_workspace ON automation_rules(workspace_id);
			CREATE INDEX idx_automation_rules_trigger
				ON automation_rules(workspace_id, trigger_type)
				WHERE status = 'active';

			CREATE TABLE rule_executions (
				id VARCHAR(255) PRIMARY KEY,
				rule_id VARCHAR(255) NOT NULL,
				trigger_type VARCHAR(100) NOT NULL,
				trigger_payload JSONB,
				action_result JSONB,
				success BOOLEAN NOT NULL,
				skipped BOOLEAN NOT NULL DEFAULT FALSE,
				execution_time_ms BIGINT NOT NULL,
				error_message TEXT,
				triggered_by VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_rule_executions_rule ON rule_executions(rule_id, created_at DESC);
		`,
		2: `
			CREATE TABLE projects (
				id VARCHAR(255) PRIMARY KEY,
				workspace_id VARCHAR(255) NOT NULL,
				slug VARCHAR(100) NOT NULL UNIQUE,
				name VARCHAR(255) NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_projects_workspace ON projects(workspace_id);

			CREATE TABLE tasks (
				id VARCHAR(255) PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL REFERENCES projects(id),
				title VARCHAR(500) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				priority VARCHAR(50) NOT NULL,
				assignees JSONB NOT NULL DEFAULT '[]',
				labels JSONB NOT NULL DEFAULT '[]',
				due_date TIMESTAMP WITH TIME ZONE,
				sequence INT NOT NULL,
				slug VARCHAR(150) NOT NULL,
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				CONSTRAINT tasks_project_slug_unique UNIQUE (project_id, slug)
			);

			CREATE INDEX idx_tasks_project ON tasks(project_id);
			CREATE INDEX idx_tasks_due_date ON tasks(due_date) WHERE due_date IS NOT NULL;

			CREATE TABLE notifications (
				id VARCHAR(255) PRIMARY KEY,
				recipients JSONB NOT NULL,
				title VARCHAR(500) NOT NULL,
				body TEXT NOT NULL DEFAULT '',
				entity_id VARCHAR(255),
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE task_comments (
				id VARCHAR(255) PRIMARY KEY,
				task_id VARCHAR(255) NOT NULL,
				author_id VARCHAR(255) NOT NULL,
				body TEXT NOT NULL,
				is_system BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_task_comments_task ON task_comments(task_id);
		`,
	}
}
