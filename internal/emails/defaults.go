package emails

import "github.com/learnhub/backend/internal/models"

const welcomeHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #3B82F6; text-align: center;">Welcome to LearnHub!</h1>
  <p>Hello {{user_name}},</p>
  <p>Thank you for signing up for LearnHub.</p>
  <div style="background-color: #F0F9FF; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #3B82F6;">
    <h2 style="color: #1E40AF; margin-top: 0;">Free courses you can start today</h2>
    <ul style="color: #374151;">
      <li>Next.js introduction (45 min)</li>
      <li>TypeScript fundamentals (30 min)</li>
      <li>React Hooks guide (free chapters)</li>
    </ul>
  </div>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{site_url}}" style="background-color: #10B981; color: white; padding: 15px 30px; text-decoration: none; border-radius: 6px; display: inline-block; font-weight: bold;">Start a free course</a>
  </div>
  <p style="color: #6B7280; font-size: 14px;">Questions? Just reply to this email.<br><strong>The LearnHub team</strong></p>
</div>`

const upgradePromptHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #8B5CF6;">How is your learning going?</h1>
  <p>Hello {{user_name}},</p>
  <p>Thanks for watching our free courses.</p>
  <div style="background-color: #FDF4FF; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #8B5CF6;">
    <h2 style="color: #7C3AED; margin-top: 0;">Premium includes</h2>
    <ul style="color: #374151;">
      <li><strong>50+ expert courses</strong> with unlimited viewing</li>
      <li><strong>Certificates</strong> of completion</li>
      <li><strong>Priority support</strong></li>
    </ul>
  </div>
  <p style="text-align: center;">
    <span style="font-size: 24px; color: #DC2626; text-decoration: line-through;">&yen;1,980/month</span><br>
    <span style="font-size: 32px; color: #059669; font-weight: bold;">&yen;980/month</span>
  </p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{site_url}}/pricing?coupon=COMEBACK50" style="background-color: #7C3AED; color: white; padding: 18px 36px; text-decoration: none; border-radius: 8px; display: inline-block; font-weight: bold; font-size: 18px;">Upgrade at 50% off</a>
  </div>
  <p style="color: #6B7280; font-size: 14px; text-align: center;">30-day money-back guarantee. Cancel anytime.</p>
</div>`

// DefaultTemplates returns the starter set given to every new owner.
func DefaultTemplates() []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			Name:        "Welcome email",
			Subject:     "Welcome to LearnHub! Enjoy our free courses",
			HTMLContent: welcomeHTML,
			Type:        models.TemplateWelcome,
			IsActive:    true,
		},
		{
			Name:        "Upgrade prompt",
			Subject:     "{{user_name}}, speed up your learning with Premium",
			HTMLContent: upgradePromptHTML,
			Type:        models.TemplateUpgradePrompt,
			IsActive:    true,
		},
	}
}
